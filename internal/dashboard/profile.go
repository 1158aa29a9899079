package dashboard

// ProfileKeys is the fixed display order of the profile page.
var ProfileKeys = []string{
	"name", "email", "title", "description", "status", "address", "phone",
	"city", "country", "facebook", "twitter", "linkedin", "instagram",
}

// ProfileField is one labelled value of the profile page.
type ProfileField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// UserProfile is the display form of the signed-in user's profile.
type UserProfile struct {
	Avatar string         `json:"avatar"`
	Fields []ProfileField `json:"fields"`
}

// Value returns the value of the named field, or "".
func (p UserProfile) Value(key string) string {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// ProfileFields renders every known profile key in order. Absent or
// non-scalar values render blank.
func ProfileFields(raw any) UserProfile {
	row := Object(raw)
	social := row.Nested("socialLinks")
	profile := UserProfile{
		Avatar: row.String("avatar"),
		Fields: make([]ProfileField, 0, len(ProfileKeys)),
	}
	for _, key := range ProfileKeys {
		value := row.String(key)
		if value == "" {
			value = social.String(key)
		}
		profile.Fields = append(profile.Fields, ProfileField{Key: key, Label: fieldLabel(key), Value: value})
	}
	return profile
}

func fieldLabel(key string) string {
	if key == "" {
		return ""
	}
	b := []byte(key)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
