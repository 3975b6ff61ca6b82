// Package reference loads the auxiliary data that service screens render,
// such as pricing tiers. A Loader reads through a shared cache to a Source
// and is used by the flow Store as a Prefetcher when a service starts
package reference
