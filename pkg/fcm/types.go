package fcm

// Request body of the HTTP v1 messages:send endpoint.
type sendRequest struct {
	Message Message `json:"message"`
}

// Message is one FCM HTTP v1 message. Exactly one of Topic or Token is set.
type Message struct {
	Topic        string            `json:"topic,omitempty"`
	Token        string            `json:"token,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *AndroidConfig    `json:"android,omitempty"`
}

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AndroidConfig struct {
	Priority     string               `json:"priority,omitempty"` // "high" or "normal"
	Notification *AndroidNotification `json:"notification,omitempty"`
}

type AndroidNotification struct {
	Sound       string `json:"sound,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
	ClickAction string `json:"click_action,omitempty"`
}

// sendResponse carries the id FCM assigned, "projects/<p>/messages/<id>".
type sendResponse struct {
	Name string `json:"name"`
}

// APIError is the Google error envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Status     string `json:"status"`
}

func (e *APIError) Error() string {
	return "fcm error " + e.Status + ": " + e.Message
}
