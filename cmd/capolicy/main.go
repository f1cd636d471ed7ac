// Capolicy deploys Conditional Access policies to an identity tenant
// from versioned JSON templates.
//
// Templates reference groups and naming through placeholder tokens; the
// tool resolves or creates the groups, substitutes the tokens, and
// creates or updates the matching tenant policies.
//
// Usage:
//
//	# Deploy all templates with the configured prefix
//	capolicy deploy
//
//	# Preview what a deployment would do
//	capolicy deploy --dry-run
//
//	# Redeploy automatically when templates change
//	capolicy deploy --watch
//
//	# Validate templates without contacting the tenant
//	capolicy validate
//
//	# Create the shared groups ahead of the first deployment
//	capolicy setup
//
//	# Show past deployment runs
//	capolicy history
package main

func main() {
	Execute()
}
