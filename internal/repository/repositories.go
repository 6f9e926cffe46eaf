package repository

import (
	"github.com/pydigger/pydigger/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Packages *PackageRepository
}

// NewRepositories constructs the repository container over the
// collections owned by s.DB.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Packages: NewPackageRepository(s.DB.Packages),
	}
}
