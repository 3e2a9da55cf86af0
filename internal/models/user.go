package models

type User struct {
	BaseModel
	Username     string   `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string   `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	FirstName    string   `gorm:"type:varchar(100);not null"`
	LastName     string   `gorm:"type:varchar(100);not null"`
	Phone        *string  `gorm:"type:varchar(20)"`
	Role         UserRole `gorm:"type:varchar(20);not null;index"`
	IsActive     bool     `gorm:"not null"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
