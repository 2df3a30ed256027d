package httpapi

// Request payloads. Patch payloads use pointer fields so absent keys
// are distinguishable from zero values; fields outside these structs
// are not patchable.

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userUpdateRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type taskCreateRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	ResponsibleID *uint  `json:"responsible_id"`
}

type taskUpdateRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Priority      *string `json:"priority"`
	Status        *string `json:"status"`
	ResponsibleID *uint   `json:"responsible_id"`
}

type assignRequest struct {
	UserID uint `json:"user_id"`
}

type boardCreateRequest struct {
	Title string `json:"title"`
}

type boardUpdateRequest struct {
	Title *string `json:"title"`
}

type boardUserRequest struct {
	UserID uint `json:"user_id"`
}

type boardTaskRequest struct {
	TaskID uint `json:"task_id"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
