package port

type Validator interface {
	// ValidateStruct returns a *domain.ValidationError when s breaks its constraints.
	ValidateStruct(s any) error
}
