// Package storefront holds the client-side shopping session: the cart and
// shipping address a shopper builds up, persisted in a key-value store, and
// submitted as an order through an OrderGateway.
package storefront
