package database

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

func (t FileType) Valid() bool {
	return t == TypeFolder || t == TypeFile || t == TypeImage
}

type File struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	UserID   primitive.ObjectID `bson:"userId"`
	Name     string             `bson:"name"`
	Type     FileType           `bson:"type"`
	IsPublic bool               `bson:"isPublic"`
	Parent   ParentRef          `bson:"parentId"`
	// LocalPath is set iff Type != folder. It never leaves the service.
	LocalPath string `bson:"localPath,omitempty"`
}

// ParentRef points at a containing folder, or at the storage root. The root
// is stored as the numeric sentinel 0 and folders as ObjectIDs, so documents
// stay wire-compatible with records written by earlier deployments.
type ParentRef struct {
	id primitive.ObjectID
}

func RootParent() ParentRef { return ParentRef{} }

func ParentOf(id primitive.ObjectID) ParentRef { return ParentRef{id: id} }

// ParseParent interprets a client-supplied parent id. The empty string and
// "0" mean the root; anything else must be a valid object id hex.
func ParseParent(s string) (ParentRef, error) {
	if s == "" || s == "0" {
		return RootParent(), nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return ParentRef{}, fmt.Errorf("invalid parent id %q: %w", s, err)
	}
	return ParentOf(id), nil
}

func (p ParentRef) IsRoot() bool { return p.id.IsZero() }

// ObjectID returns the referenced folder id. Only meaningful when !IsRoot.
func (p ParentRef) ObjectID() primitive.ObjectID { return p.id }

func (p ParentRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if p.IsRoot() {
		return bson.MarshalValue(int32(0))
	}
	return bson.MarshalValue(p.id)
}

func (p *ParentRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bson.TypeObjectID {
		// Numeric root sentinel.
		*p = ParentRef{}
		return nil
	}
	raw := bson.RawValue{Type: t, Value: data}
	return raw.Unmarshal(&p.id)
}

// MarshalJSON renders the root as the literal 0 the API has always returned,
// and references as their hex string.
func (p ParentRef) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return []byte(`"` + p.id.Hex() + `"`), nil
}
