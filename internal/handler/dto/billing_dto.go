package dto

type SubscriptionCheckoutRequest struct {
	Plan string `json:"plan" binding:"required,oneof=monthly yearly"`
}

type PortalResponse struct {
	URL string `json:"url"`
}
