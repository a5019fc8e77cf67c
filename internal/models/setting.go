package models

import (
	"time"
)

// Well-known admin_settings keys.
const (
	SettingPaymentConfig   = "payment_config"
	SettingPremiumFeatures = "premium_features"
)

// Setting is one key-value record in the admin_settings collection. Values
// are arbitrary structured payloads; typed accessors live in the settings
// service.
type Setting struct {
	Key       string      `bson:"_id" json:"setting_key"`
	Value     interface{} `bson:"value" json:"setting_value"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
	UpdatedBy string      `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// PaymentConfig is the shape of the payment_config setting payload: where
// simulated Pi-coin payments are directed. The gateway itself is out of
// scope; only its configuration is stored.
type PaymentConfig struct {
	WalletAddress string  `bson:"wallet_address" json:"wallet_address"`
	Network       string  `bson:"network" json:"network"`
	PremiumPrice  float64 `bson:"premium_price" json:"premium_price"`
	Enabled       bool    `bson:"enabled" json:"enabled"`
}
