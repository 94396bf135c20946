// Package rulebuilder provides a registry of condition kinds, grouped into
// languages, that evaluates trees of nested boolean conditions and describes
// their legal shape as a JSON Schema.
//
// Typical use is as follows:
//
//  1. Create a Registry
//  2. Register condition kinds into a language
//  3. Request the language schema, and hand it to whatever edits rule trees
//  4. Validate rule trees received from editors or storage
//  5. Evaluate rule trees against your application data
//
// # Conditions and Languages
//
// A condition kind implements the Condition interface: it describes its
// fields with a Form, and evaluates a rule node against application data.
// Leaf kinds are defined by the application (see NewCondition, and package
// cel for kinds written as CEL expressions). Each language also has one
// composite kind, "ifcondition", which the registry synthesizes when it
// builds the language schema. It combines child conditions:
//
//	{
//	  "condition_type": "ifcondition",
//	  "concatenation": "ALL",          // ALL, ANY or NONE
//	  "evaluation": "TRUE",            // TRUE or FALSE
//	  "conditions": [
//	    {"condition_type": "age_over", "n": 18},
//	    {"condition_type": "country_is", "code": "US"}
//	  ]
//	}
//
// An empty list of conditions is always true. Child conditions whose type is
// not registered in the language are skipped rather than failing the parent,
// so stored rules survive the removal of a condition kind from the code.
//
// # Schema Caching
//
// The schema of a language is built on the first request and cached.
// Registering a condition into the language evicts the cached schema; there
// is no other way to change a language, and no expiry.
//
// # Concurrency
//
// A Registry is safe for concurrent use. Registration takes a write lock;
// schema requests and evaluation take read locks. Concurrent schema requests
// for the same language share one build. Condition kinds must themselves be
// safe for concurrent use if the registry is used from several goroutines.
//
// Evaluation does not block: it walks the rule tree synchronously, checking
// the context for cancellation between child conditions. The nesting depth is
// limited (see WithMaxDepth), as rule trees may come from untrusted storage.
package rulebuilder
