// Package cli implements the autotagger command line.
//
//	autotagger scan <folder>         tag every image below folder
//	autotagger tags <folder> [tag]   list tags, or the photos carrying one tag
//	autotagger serve                 run the HTTP control API
//	autotagger diagnose <file>       show what each metadata reader sees in one image
//	autotagger version               print build information
//
// Global flags override the config file and AUTOTAGGER_* environment.
package cli
