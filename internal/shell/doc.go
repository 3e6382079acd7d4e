// Package shell tells the user how to put the install directory on PATH.
//
// The user's shell is detected from, in order:
//  1. the $SHELL environment variable
//  2. the name of the parent process (via gopsutil)
//  3. PSModulePath, which PowerShell sets on every platform
//
// For each supported shell the package knows the configuration file that is
// read at startup and the line that appends a directory to PATH:
//
//	bash:       ~/.bashrc                   export PATH="$PATH:/dir"
//	zsh:        ~/.zshrc                    export PATH="$PATH:/dir"
//	fish:       ~/.config/fish/config.fish  fish_add_path /dir
//	powershell: $PROFILE                    $env:Path += ";/dir"
//
// Nothing in this package modifies files; callers print the guidance.
package shell
