package curriculum

// Topic is a node of the curriculum definition as written in YAML.
// Top-level topics are the curriculum parts.
type Topic struct {
	ID          string  `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Children    []Topic `yaml:"topics,omitempty" json:"children,omitempty"`
}

// Curriculum is the root of a curriculum definition.
type Curriculum struct {
	Name  string  `yaml:"name" json:"name"`
	Parts []Topic `yaml:"parts" json:"parts"`
}

// Node is a read-only view of a topic inside a built Tree.
type Node struct {
	ID          string
	Title       string
	Description string

	// Part is the ID of the top-level topic this node belongs to.
	Part string

	// Depth is 0 for parts, 1 for their children, and so on.
	Depth int

	// Leaf is true when the node has no children. Only leaves anchor
	// generation requests.
	Leaf bool
}
