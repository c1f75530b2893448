package link

import "time"

type createInput struct {
	Body CreateRequest
}

// CreateRequest несет хеш кода и зашифрованный мастер-ключ.
// Сам код сервер никогда не видит.
type CreateRequest struct {
	CodeHash     string `json:"code_hash" doc:"sha256 кода, hex"`
	Salt         string `json:"salt" doc:"Соль KDF, base64"`
	EncryptedKey string `json:"encrypted_key" doc:"Мастер-ключ, зашифрованный ключом из кода, base64"`
}

type createOutput struct {
	Body CreateResponse
}

type CreateResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	Status    string    `json:"status"`
}

type redeemInput struct {
	Body RedeemRequest
}

type RedeemRequest struct {
	CodeHash string `json:"code_hash" doc:"sha256 введенного кода, hex"`
}

type redeemOutput struct {
	Body RedeemResponse
}

type RedeemResponse struct {
	Salt         string `json:"salt"`
	EncryptedKey string `json:"encrypted_key"`
	Status       string `json:"status"`
}
