package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Credential() CredentialRepository
	Mapping() MappingRepository
	DayCache() DayCacheRepository

	Close() error
}
