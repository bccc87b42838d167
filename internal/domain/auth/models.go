package auth

type Credential struct {
	EmployeeID   string
	Email        string
	Role         string
	PasswordHash string
}

type LoginResult struct {
	Token string `json:"token"`
	Actor Actor  `json:"actor"`
}
