package types

// InternalAuth governs feeds hosted by the pipeline service, identified by
// URI prefix.
type InternalAuth struct {
	URIPrefixes           []string
	AccessToken           string
	UseCredentialProvider bool
	UseCredentialConfig   bool
}

type ExternalAuth struct {
	EndpointURI string
	Username    string
	Secret      string
}

type AuthenticationDescriptor struct {
	Internal InternalAuth
	External []ExternalAuth
}

// AuthMode reports which credential mechanism the descriptor selects. It
// returns an empty mode when both mechanisms are set.
func (d AuthenticationDescriptor) AuthMode() AuthMode {
	switch {
	case d.Internal.UseCredentialProvider && d.Internal.UseCredentialConfig:
		return ""
	case d.Internal.UseCredentialProvider:
		return AuthModeCredentialProvider
	case d.Internal.UseCredentialConfig:
		return AuthModeCredentialConfig
	default:
		return AuthModeNone
	}
}

type ExecutionEnvironment struct {
	CredentialProviderFolder string
	ExtensionsDisabled       bool
}
