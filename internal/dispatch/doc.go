// Package dispatch selects the command an extension should run and invokes
// it. It also turns the raw --parameters payload into the untyped value
// extensions receive.
package dispatch
