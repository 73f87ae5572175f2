// Package registry implements the provider plugin registry: the mapping
// from (provider, resource type) to a registered resource-type entry, plus
// the lazy-load step that gives provider modules a chance to register
// themselves before a lookup.
//
// Provider packages register their types at initialization:
//
//	func init() {
//	    registry.OnLoad("aws", func() error {
//	        registry.Register(&engine.ResourceType{
//	            Provider: "aws",
//	            Name:     "ec2",
//	            Model:    ec2Model,
//	            New:      newEC2Handler,
//	        })
//	        return nil
//	    })
//	}
//
// Callers resolve types in two explicit phases:
//
//	if err := registry.EnsureLoaded("aws.ec2"); err != nil { ... }
//	rt, ok := registry.Lookup("aws", "ec2")
//
// After a successful lookup the mapping for that key is stable for the
// process lifetime; nothing is ever unloaded.
package registry
