// Package steps is the closed catalog of flow steps
//
// Every step token belongs to exactly one namespace type: the generic
// namespace or one role/service pair. Typed constants and the sealed step
// interfaces turn references to undeclared or foreign steps into compile
// errors wherever a typed API is used
package steps
