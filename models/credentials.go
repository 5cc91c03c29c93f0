package models

const (
	DefaultHost = "localhost"
	DefaultPort = 4455
)

// Credentials locate and authenticate the remote studio-control service.
type Credentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
}

func DefaultCredentials() Credentials {
	return Credentials{
		Host: DefaultHost,
		Port: DefaultPort,
	}
}
