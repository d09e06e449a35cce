package infra

import (
	_ "embed"
	"fmt"
	"strings"

	"go-hrdesk/internal/role"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

var (
	//go:embed model.conf
	modelText string

	//go:embed policy.csv
	policyText string
)

// ApproverActions are granted on "leave" to every configured approver role.
// They are not part of the embedded policy so the approver list has a single
// source.
var ApproverActions = []string{"approve", "read_all"}

// NewEnforcer builds an in-memory enforcer from the embedded role model and
// policy, then grants ApproverActions to approverRoles (role.Approvers when
// empty). Subjects are normalized role names.
func NewEnforcer(approverRoles ...string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := loadPolicy(e, policyText); err != nil {
		return nil, err
	}
	if err := grantApprovers(e, approverRoles); err != nil {
		return nil, err
	}
	return e, nil
}

func grantApprovers(e *casbin.Enforcer, approverRoles []string) error {
	if len(approverRoles) == 0 {
		approverRoles = role.Approvers
	}
	for _, r := range approverRoles {
		subject := role.NormalizeRole(r)
		if subject == "" {
			continue
		}
		for _, action := range ApproverActions {
			if _, err := e.AddPolicy(subject, "leave", action); err != nil {
				return fmt.Errorf("rbac approver %q: %w", subject, err)
			}
		}
	}
	return nil
}

func loadPolicy(e *casbin.Enforcer, text string) error {
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}

		var err error
		switch {
		case parts[0] == "p" && len(parts) == 4:
			_, err = e.AddPolicy(parts[1], parts[2], parts[3])
		case parts[0] == "g" && len(parts) == 3:
			_, err = e.AddGroupingPolicy(parts[1], parts[2])
		default:
			err = fmt.Errorf("malformed rule %q", line)
		}
		if err != nil {
			return fmt.Errorf("rbac policy line %d: %w", i+1, err)
		}
	}
	return nil
}
