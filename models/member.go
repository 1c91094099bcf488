package models

// Member is a person attached to a project.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

var (
	memberID    = Aliases{"id", "_id"}
	memberName  = Aliases{"name"}
	memberImage = Aliases{"imageUrl", "img"}
)

func normalizeMembers(list []any) []Member {
	members := make([]Member, 0, len(list))
	for _, item := range list {
		switch m := item.(type) {
		case Member:
			members = append(members, m)
		case *Member:
			if m != nil {
				members = append(members, *m)
			}
		default:
			raw, ok := ToRecord(item)
			if !ok {
				continue
			}
			id, _ := raw.text(memberID)
			name, _ := raw.text(memberName)
			image, _ := raw.text(memberImage)
			members = append(members, Member{ID: id, Name: name, ImageURL: image})
		}
	}
	return members
}

func membersToRaw(members []Member) []any {
	out := make([]any, 0, len(members))
	for _, m := range members {
		out = append(out, map[string]any{
			"id":       m.ID,
			"name":     m.Name,
			"imageUrl": m.ImageURL,
		})
	}
	return out
}
