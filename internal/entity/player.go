package entity

// Player is the signed-in identity handed over by the identity provider.
type Player struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName is the identity string submitted with a score.
func (that Player) DisplayName() string {
	if that.Name != "" {
		return that.Name
	}
	return that.Email
}

func (that Player) IsZero() bool {
	return that.Name == "" && that.Email == ""
}
