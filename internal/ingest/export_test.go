package ingest

// SetRename replaces the relocation primitive.
func (c *Coordinator) SetRename(fn func(oldpath, newpath string) error) {
	c.rename = fn
}
