package util

// MakeUrl joins the parts with exactly one slash between each.
func MakeUrl(parts ...string) string {
	res := ""
	for i, p := range parts {
		if p == "" {
			continue
		}
		if p[len(p)-1:] == "/" {
			p = p[:len(p)-1]
		}
		if p != "" && p[0] != '/' && i > 0 {
			res += "/" + p
		} else {
			res += p
		}
	}
	return res
}

// ShareUrl is the public page a recipient opens to fetch a transfer.
func ShareUrl(publicOrigin string, transferId string) string {
	return MakeUrl(publicOrigin, "/d/", transferId)
}
