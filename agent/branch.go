package agent

// buildBranchPath composes the dotted branch identifier that labels isolated
// child contexts. If parent is empty it returns child; an empty child returns
// parent unchanged.
func buildBranchPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
