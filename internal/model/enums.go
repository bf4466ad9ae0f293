package model

type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusSubmitted ArticleStatus = "submitted"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusRejected  ArticleStatus = "rejected"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusPublished OrderStatus = "published"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderTransitions describes the allowed order status flow. Publishing
// is a status flip performed by an admin after payment.
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusPublished, OrderStatusCancelled},
}

func CanTransitionOrder(from, to OrderStatus) bool {
	for _, allowed := range ValidOrderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
