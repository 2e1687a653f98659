package cloudinary

import (
	"github.com/cloudinary/cloudinary-go/v2"
)

// New reads CLOUDINARY_URL from the environment.
func New() (*cloudinary.Cloudinary, error) {
	return cloudinary.New()
}
