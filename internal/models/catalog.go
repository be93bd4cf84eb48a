package models

// Package 网络套餐（目录服务资源）
type Package struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SpeedMbps     int    `json:"speed_mbps"`
	PricePerMonth int    `json:"price_per_month"`
	Description   string `json:"description"`
	Active        bool   `json:"active"`
}

// SubscriptionStatus 订阅状态
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription 用户订阅记录
type Subscription struct {
	ID           string             `json:"id"`
	CustomerName string             `json:"customer_name"`
	PhoneNumber  string             `json:"phone_number"`
	PackageID    string             `json:"package_id"`
	StartDate    float64            `json:"start_date"`
	Status       SubscriptionStatus `json:"status"`
}
