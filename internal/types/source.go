package types

type PackageSource struct {
	Name       string
	URI        string
	IsInternal bool
}

type PackagingLocation struct {
	URIPrefixes []string
	DefaultURI  string
}
