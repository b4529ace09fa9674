// Package main hosts vyshim, the per-node hook the configuration front end
// runs for every changed node during a commit.
//
// vyshim forwards the node to vyos-configd and maps the daemon's status byte
// to an exit status. When the daemon answers PASS, vyshim hands the node back
// to its script, either by replacing itself with the script (exec mode) or by
// running it and propagating its exit status (spawn mode).
//
// The command takes positional arguments only; flag parsing is disabled so
// tag-node values that start with "-" reach the daemon untouched. Settings
// come from the TOML file named by VYSHIM_CONFIG (default
// /etc/vyshim/config.toml) and the VYSHIM_ENDPOINT and VYSHIM_DEBUG variables.
//
// Exit statuses: 0 success, 1 daemon rejected the node or did not reply in
// time, 2 daemon channel failure, 3 process failure, 4 setup or usage error.
package main
