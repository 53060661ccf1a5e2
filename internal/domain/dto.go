package domain

type OrderStatusType string

const (
	OrderStatusPending   OrderStatusType = "PENDING"
	OrderStatusPaid      OrderStatusType = "PAID"
	OrderStatusCancelled OrderStatusType = "CANCELLED"
)

type PointTransactionType string

const (
	PointTransactionCharge PointTransactionType = "CHARGE"
	PointTransactionUse    PointTransactionType = "USE"
)
