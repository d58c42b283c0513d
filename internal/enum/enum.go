package enum

// ── Order lifecycle (free-text column, canonical casing lives here) ──

const (
	OrderStatusNotcomplete = "Notcomplete"
	OrderStatusProcessing  = "Processing"
	OrderStatusCompleted   = "Completed"
	OrderStatusCancelled   = "Cancelled"
)

const (
	PaymentMethodCounter   = "counter"
	PaymentMethodGooglePay = "googlepay"
)

// ── Billing (CHECK constrained in DB) ──

const (
	BillStatusPending = "PENDING"
	BillStatusPartial = "PARTIAL"
	BillStatusPaid    = "PAID"
)

const (
	BillTypeUtility     = "Utility"
	BillTypeRent        = "Rent"
	BillTypeMaintenance = "Maintenance"
	BillTypeInsurance   = "Insurance"
	BillTypeLicense     = "License"
	BillTypeTax         = "Tax"
	BillTypeOther       = "Other"
)

// ── Restaurants ──

const (
	RestaurantTypeRestaurant = "Restaurant"
	RestaurantTypeCanteen    = "Canteen"
)

// ── Subscriptions ──

const (
	SubscriptionPlanMonthly  = "monthly"
	SubscriptionPlanBiannual = "biannual"
	SubscriptionPlanAnnual   = "annual"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// ── Messages ──

const (
	SenderRoleAdmin   = "admin"
	SenderRoleKitchen = "kitchen"
	SenderRoleWaiter  = "waiter"
)

const (
	MessageTypeText         = "text"
	MessageTypeImage        = "image"
	MessageTypeNotification = "notification"
)
