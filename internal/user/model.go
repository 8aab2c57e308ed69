package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the sole persisted entity. The bson field names match the
// collection schema exactly; password hash and verification code are never
// serialized to JSON.
type User struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                    string             `bson:"name" json:"name"`
	Email                   string             `bson:"email" json:"email"`
	PasswordHash            string             `bson:"password" json:"-"`
	VerificationCode        *string            `bson:"verificationCode" json:"-"`
	VerificationCodeExpires *time.Time         `bson:"verificationCodeExpires" json:"-"`
	IsVerified              bool               `bson:"isVerified" json:"is_verified"`
	CreatedAt               time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt               time.Time          `bson:"updatedAt" json:"updated_at"`
}
