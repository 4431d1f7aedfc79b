// Package pack loads content packs: declarative YAML files defining dynamic
// tokens and conditional changes whose fields are token templates.
//
// A pack is loaded against a [registry.Registry]. Its dynamic tokens are
// registered into that registry in declaration order, so a rule may only
// reference tokens that exist when it is declared. Each call to
// [Pack.Update] runs one tick: dynamic token rules update first, in order,
// then every change is re-evaluated concurrently.
//
//	name: example
//	dynamicTokens:
//	  - name: Greeting
//	    value: Good morning, Good day
//	    when: { Season: Spring }
//	changes:
//	  - logName: season sign
//	    fields: { target: "Maps/{{Season}}", text: "{{Greeting}}!" }
//	    when: { "Hearts:Abigail": [5, 6] }
package pack
