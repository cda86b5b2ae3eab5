package entity

import "time"

// NewsletterSubscriber maps the newsletter_subscribers table.
type NewsletterSubscriber struct {
	ID             string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Email          string     `gorm:"column:email;type:varchar(320);uniqueIndex;not null" json:"email"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	SubscribedAt   time.Time  `gorm:"column:subscribed_at" json:"subscribed_at"`
	UnsubscribedAt *time.Time `gorm:"column:unsubscribed_at" json:"unsubscribed_at"`
	Source         *string    `gorm:"column:source;type:varchar(64)" json:"source"`
}

func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
