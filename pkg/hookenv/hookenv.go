// Package hookenv centralizes the names of every environment variable the
// Reactor sets before spawning a kit hook or reaction script, mirroring the
// way the teacher's envvar package centralizes its own variable names in one
// place instead of scattering string literals through the call sites.
package hookenv

// Core variables, present for every hook/reaction invocation.
const (
	Root          = "GENESIS_ROOT"
	Environment   = "GENESIS_ENVIRONMENT"
	Type          = "GENESIS_TYPE"
	CallBin       = "GENESIS_CALL_BIN"
	CallEnv       = "GENESIS_CALL_ENV"
	CallPrefix    = "GENESIS_CALL_PREFIX"
	CallFull      = "GENESIS_CALL_FULL"
	EnvParamsJSON = "GENESIS_ENVIRONMENT_PARAMS"
	MinVersion    = "GENESIS_MIN_VERSION"
	TargetVault   = "GENESIS_TARGET_VAULT"
	VerifyVault   = "GENESIS_VERIFY_VAULT"
	KitName       = "GENESIS_KIT_NAME"
	KitVersion    = "GENESIS_KIT_VERSION"
	SecretsSlug   = "GENESIS_SECRETS_SLUG"
	RootCAPath    = "GENESIS_ROOT_CA_PATH"
	ReqFeatures   = "GENESIS_REQUESTED_FEATURES"
)

// Mount-kind variables: one triple per {secrets, exodus, ci}.
const (
	SecretsMount         = "GENESIS_SECRETS_MOUNT"
	SecretsBase          = "GENESIS_SECRETS_BASE"
	SecretsMountOverride = "GENESIS_SECRETS_MOUNT_OVERRIDE"
	ExodusMount          = "GENESIS_EXODUS_MOUNT"
	ExodusBase           = "GENESIS_EXODUS_BASE"
	ExodusMountOverride  = "GENESIS_EXODUS_MOUNT_OVERRIDE"
	CIMount              = "GENESIS_CI_MOUNT"
	CIBase               = "GENESIS_CI_BASE"
	CIMountOverride      = "GENESIS_CI_MOUNT_OVERRIDE"
)

// Credhub variables.
const (
	CredhubServer = "CREDHUB_SERVER"
	CredhubClient = "CREDHUB_CLIENT"
	CredhubSecret = "CREDHUB_SECRET"
	CredhubCACert = "CREDHUB_CA_CERT"
)

// BOSH variables, cleared when the environment uses create-env.
const (
	BoshAlias         = "BOSH_ALIAS"
	BoshEnvironment   = "BOSH_ENVIRONMENT"
	BoshCACert        = "BOSH_CA_CERT"
	BoshClient        = "BOSH_CLIENT"
	BoshClientSecret  = "BOSH_CLIENT_SECRET"
	BoshDeployment    = "BOSH_DEPLOYMENT"
)

// Reaction-only variables.
const (
	PredeployDatafile = "GENESIS_PREDEPLOY_DATAFILE"
	ManifestFile      = "GENESIS_MANIFEST_FILE"
	BoshvarsFile      = "GENESIS_BOSHVARS_FILE"
	DeployOptionsJSON = "GENESIS_DEPLOY_OPTIONS"
	DeployDryRun      = "GENESIS_DEPLOY_DRYRUN"
	DeployRC          = "GENESIS_DEPLOY_RC"
)

// MountVars returns the {mount, base, override} variable name triple for one
// of the three mount kinds ("secrets", "exodus", "ci").
func MountVars(kind string) (mount, base, override string) {
	switch kind {
	case "secrets":
		return SecretsMount, SecretsBase, SecretsMountOverride
	case "exodus":
		return ExodusMount, ExodusBase, ExodusMountOverride
	case "ci":
		return CIMount, CIBase, CIMountOverride
	default:
		return "", "", ""
	}
}

// ConfigVar returns the GENESIS_<TYPE>_CONFIG[_<NAME>] env var name used to
// mirror a fetched BOSH director config into a hook's environment.
func ConfigVar(configType, name string) string {
	v := "GENESIS_" + upper(configType) + "_CONFIG"
	if name != "" && name != "*" {
		v += "_" + upper(name)
	}

	return v
}

func upper(s string) string {
	out := make([]byte, len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}

		out[i] = c
	}

	return string(out)
}
