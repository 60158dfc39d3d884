package kafka

import "strings"

// TopicPrefix namespaces every topic this service writes to.
const TopicPrefix = "storefront"

// Topic joins the prefix and the given segments with dots, e.g.
// Topic("cart", "updated") is "storefront.cart.updated".
func Topic(segments ...string) string {
	return strings.Join(append([]string{TopicPrefix}, segments...), ".")
}
