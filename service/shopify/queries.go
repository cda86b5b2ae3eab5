package shopify

const imageFields = `
fragment ImageFields on Image {
  id
  url
  altText
  width
  height
}
`

const productFields = `
fragment ProductFields on Product {
  id
  title
  description
  descriptionHtml
  handle
  availableForSale
  productType
  vendor
  tags
  priceRange {
    minVariantPrice { amount currencyCode }
  }
  variants(first: 100) {
    edges {
      node {
        id
        title
        price { amount currencyCode }
        availableForSale
        selectedOptions { name value }
        image { ...ImageFields }
        sku
        quantityAvailable
      }
    }
  }
}
`

const cartFields = `
fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    totalAmount { amount currencyCode }
    subtotalAmount { amount currencyCode }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            price { amount currencyCode }
            product {
              id
              title
              handle
              images(first: 1) { edges { node { ...ImageFields } } }
            }
            selectedOptions { name value }
          }
        }
        cost {
          totalAmount { amount currencyCode }
        }
      }
    }
  }
}
`

const productsQuery = `
query getProducts($first: Int!, $after: String, $query: String) {
  products(first: $first, after: $after, query: $query) {
    edges {
      node {
        ...ProductFields
        images(first: 5) { edges { node { ...ImageFields } } }
      }
      cursor
    }
    pageInfo { hasNextPage endCursor }
  }
}
` + productFields + imageFields

const productQuery = `
query getProduct($handle: String!) {
  product(handle: $handle) {
    ...ProductFields
    images(first: 10) { edges { node { ...ImageFields } } }
  }
}
` + productFields + imageFields

const collectionsQuery = `
query getCollections($first: Int!) {
  collections(first: $first) {
    edges {
      node {
        id
        title
        handle
        description
        image { ...ImageFields }
      }
    }
  }
}
` + imageFields

const cartCreateMutation = `
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
` + cartFields + imageFields

const cartLinesAddMutation = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
` + cartFields + imageFields

const cartLinesUpdateMutation = `
mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
` + cartFields + imageFields

const cartQuery = `
query getCart($cartId: ID!) {
  cart(id: $cartId) { ...CartFields }
}
` + cartFields + imageFields
