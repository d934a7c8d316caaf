package cache

// Keyer derives cache keys for rendered artifacts.
type Keyer interface {
	// ArtifactKey returns the key for one rendering of a dataset.
	// datasetHash identifies the item snapshot the render was made from.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render inputs besides the items themselves.
// Any field that changes the output bytes must be part of the key.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Strategy   string `json:"strategy"`
	Multiplier int    `json:"multiplier"`
	Metrics    string `json:"metrics,omitempty"`
	Settings   string `json:"settings,omitempty"`
}

// DefaultKeyer hashes the dataset hash and options into "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}
