// Package dispatcher runs a process on the simulated CPU one instruction at a
// time and lets the caller stop it at any instruction boundary.
package dispatcher
