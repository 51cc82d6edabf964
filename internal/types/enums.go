package types

type FeedSelectionMode string

const (
	FeedSelectionConfig FeedSelectionMode = "config"
	FeedSelectionSelect FeedSelectionMode = "select"
)

type AuthMode string

const (
	AuthModeCredentialProvider AuthMode = "credential-provider"
	AuthModeCredentialConfig   AuthMode = "credential-config"
	AuthModeNone               AuthMode = "none"
)

type TaskResult string

const (
	TaskResultSucceeded TaskResult = "Succeeded"
	TaskResultFailed    TaskResult = "Failed"
)
