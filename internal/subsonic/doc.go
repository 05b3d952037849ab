// Package subsonic models protocol responses independently of their wire format.
//
// Handlers build a tree of [Node] values and wrap it in a [Response]. [Render] then walks the same tree
// once per format, so the XML and JSON documents always carry the same information:
//
//	attribute  -> XML attribute          / JSON field with a scalar value
//	text       -> XML character data     / JSON field with a scalar value
//	element    -> XML child element      / JSON field holding a scalar or an object
//	group      -> repeated XML elements  / JSON array (possibly empty)
//
// The package also defines the protocol error codes and [AsError], which maps internal errors onto them.
package subsonic
