package apiclient

import "github.com/marmos91/idrecon/pkg/recon/browse"

// LoginDuplicates lists logins found in more than one domain.
func (c *Client) LoginDuplicates() (*browse.LoginDuplicates, error) {
	return getResource[browse.LoginDuplicates](c, "/api/v1/duplicates/logins")
}

// GroupsTree lists groups per domain.
func (c *Client) GroupsTree() ([]browse.GroupDomain, error) {
	return listResources[browse.GroupDomain](c, "/api/v1/groups/tree")
}

// GroupMembers lists the members of group in domain.
func (c *Client) GroupMembers(domain, group string) ([]browse.Member, error) {
	return listResources[browse.Member](c, withQuery("/api/v1/groups/members",
		map[string]string{"domain": domain, "group": group}))
}

// OrgTree lists companies and departments.
func (c *Client) OrgTree() ([]browse.Company, error) {
	return listResources[browse.Company](c, "/api/v1/org/tree")
}

// OrgMembers lists accounts of company and department. Empty filters match
// everything.
func (c *Client) OrgMembers(company, department string) ([]browse.Member, error) {
	return listResources[browse.Member](c, withQuery("/api/v1/org/members",
		map[string]string{"company": company, "department": department}))
}

// StructureTree lists the OU hierarchy per domain.
func (c *Client) StructureTree() ([]browse.StructureDomain, error) {
	return listResources[browse.StructureDomain](c, "/api/v1/structure/tree")
}

// StructureMembers lists accounts directly under path in domain.
func (c *Client) StructureMembers(domain, path string) ([]browse.Member, error) {
	return listResources[browse.Member](c, withQuery("/api/v1/structure/members",
		map[string]string{"domain": domain, "path": path}))
}
