package dto

// ShowcaseSubmission is both the request body of a new listing and the
// payload stored on a payment intent until the checkout completes.
type ShowcaseSubmission struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	ContactName  string   `json:"contact_name"`
	ContactPhone string   `json:"contact_phone"`
	ImageURLs    []string `json:"image_urls"`
	VideoURL     string   `json:"video_url"`
	PriceCents   *int64   `json:"price_cents"`
}

// EditPostRequest carries only the fields the owner wants to change.
type EditPostRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	ContactName *string   `json:"contact_name"`
	ImageURLs   *[]string `json:"image_urls"`
	VideoURL    *string   `json:"video_url"`
	PriceCents  *int64    `json:"price_cents"`
	ClearPrice  bool      `json:"clear_price"`
}

type PostStatusRequest struct {
	Status string `json:"status"`
}

type EligibilityResponse struct {
	FirstSubmission bool   `json:"first_submission"`
	PriceCents      int64  `json:"price_cents"`
	Currency        string `json:"currency"`
}

type PaymentRequiredResponse struct {
	PaymentRequired bool   `json:"payment_required"`
	SessionID       string `json:"session_id"`
	ClientSecret    string `json:"client_secret"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
}
