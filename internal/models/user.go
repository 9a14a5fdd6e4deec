package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserStats struct {
	Games         int   `json:"games"`
	Wins          int   `json:"wins"`
	Losses        int   `json:"losses"`
	TotalBet      int64 `json:"total_bet"`
	TotalWinnings int64 `json:"total_winnings"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"` // bcrypt hash, only serialized to the data file
	Name     string `json:"name"`
	Role     Role   `json:"role"`

	Points int64 `json:"points"`
	Canes  int64 `json:"canes"`

	Banned   bool `json:"banned"`
	IsActive bool `json:"is_active"`

	Stats UserStats `json:"stats"`

	CreateTime string `json:"create_time"`
}

// PublicUser is the client-visible projection of a User.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Points   int64  `json:"points"`
	Canes    int64  `json:"canes"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		Points:   u.Points,
		Canes:    u.Canes,
	}
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Points   int64  `json:"points"`
	Role     Role   `json:"role"`
}
