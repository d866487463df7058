package proto

type RegisterRequest struct {
	Username   string    `json:"username"`
	Descriptor []float32 `json:"descriptor"`
}

type RegisterResponse struct {
	Id       string `json:"id"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Descriptor []float32 `json:"descriptor"`
}

type LoginResponse struct {
	Username    string  `json:"username"`
	Distance    float64 `json:"distance"`
	AccessToken string  `json:"access_token"`
}

// WhoAmIRequest carries no fields; the token travels in the access_token
// metadata key.
type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	Username string `json:"username"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
