package wallabag

// TokenResponse is the body of a successful /oauth/v2/token call.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

// EntriesResponse is the HAL envelope returned by /api/entries.json.
type EntriesResponse struct {
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
	Embedded *Embedded `json:"_embedded"`
}

type Embedded struct {
	Items *[]Item `json:"items"`
}

type Item struct {
	ID          int64        `json:"id"`
	URL         string       `json:"url"`
	Title       string       `json:"title"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Annotations []Annotation `json:"annotations"`
}

type Annotation struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Quote string `json:"quote"`
}
