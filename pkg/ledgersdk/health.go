package ledgersdk

import "github.com/storefrontbuilder/ledger/pkg/jwtx"

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the key set served at /.well-known/jwks.json.
type JWKSResponse = jwtx.JWKS
