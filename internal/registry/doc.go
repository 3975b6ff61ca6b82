// Package registry resolves flow steps to renderable units
//
// A step may carry many registrations constrained by role and service.
// Resolution is deterministic: exact matches beat role-only matches, which
// beat service-only matches, which beat generic ones; priority orders
// registrations within a tier; a per-step fallback catches everything else
package registry
