// Package config provides configuration loading, validation, and defaults
// for the capolicy deployment tool.
//
// Configuration is loaded from a YAML file and can be overridden by
// environment variables using the CAPOLICY_ prefix (for example,
// CAPOLICY_DEPLOY_PREFIX overrides deploy.prefix). Group display names
// default to values derived from the run prefix, matching the naming scheme
// the deployment engine expects.
package config
