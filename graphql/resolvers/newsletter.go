package resolvers

import (
	"context"
	"errors"
	"log"

	"lunelle.GO/graphql"
	gqlmodels "lunelle.GO/graphql/models"
	"lunelle.GO/service/newsletter"
)

// SubscribeNewsletter reports failures in the result rather than as GraphQL
// errors, so forms can always show the message.
func (r *Resolver) SubscribeNewsletter(ctx context.Context, args graphql.SubscribeNewsletterArgs) (*gqlmodels.NewsletterResult, error) {
	source := newsletter.SourceAPI
	if args.Source != nil && *args.Source != "" {
		source = *args.Source
	}
	_, err := r.svc.Newsletter.Subscribe(ctx, args.Email, source)
	if err != nil && !errors.Is(err, newsletter.ErrInvalidEmail) {
		log.Printf("graphql: subscribeNewsletter: %v", err)
	}
	return &gqlmodels.NewsletterResult{OK: err == nil, Message: newsletter.Message(err)}, nil
}
