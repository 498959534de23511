// Package catalogue holds build information for the catalogue module.
package catalogue

// Version is the module version. Release builds override it with
// -ldflags "-X github.com/mesh-intelligence/catalogue/pkg/catalogue.Version=...".
var Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/catalogue"
