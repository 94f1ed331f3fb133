package edtl

// RequirementSet is the small API that model packages implement.
type RequirementSet interface {
	Name() string
	OriginalText() string
	Vocabulary() *Vocabulary
	Requirements() []*Requirement
}
