package domain

import (
	"encoding/base64"
	"time"
)

// ReceiptState is the progress of a receipt upload.
type ReceiptState string

const (
	ReceiptNone       ReceiptState = "none"
	ReceiptProcessing ReceiptState = "processing"
	ReceiptReady      ReceiptState = "ready"
	ReceiptFailed     ReceiptState = "failed"
)

// Receipt is a compressed payment receipt waiting to be submitted with the payment report.
type Receipt struct {
	OrderID         string    `json:"orderId"`
	Data            []byte    `json:"data"`
	ContentType     string    `json:"contentType"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	OriginalBytes   int       `json:"originalBytes"`
	CompressedBytes int       `json:"compressedBytes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Preview returns the receipt as a data URL for an <img> tag.
func (r Receipt) Preview() string {
	return "data:" + r.ContentType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}
