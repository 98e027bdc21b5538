package models

import "github.com/google/uuid"

// Product is the slice of the store's product record the matching engine
// consumes. The catalog of products itself is owned by the POS layer; the
// engine only reads the description (for keyword inference) and the barcode
// (display only).
type Product struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Barcode     string    `json:"barcode,omitempty"`
}

// CartItem is one line of a sale being gated. Quantity is validated at the
// boundary and passed through for the caller's logging; it does not affect
// matching.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}
