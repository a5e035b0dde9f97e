// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package profile applies named sets of RBAC bindings to a cluster.
package profile

import (
	"context"
	"fmt"
	"strings"

	rbacv1 "k8s.io/api/rbac/v1"

	"go.coralgate.dev/internal/constable"
	"go.coralgate.dev/internal/plog"
)

const (
	ErrMissingIdentity = constable.Error("authorization binding is missing required identity fields")
	ErrAPI             = constable.Error("cluster API request failed")
	ErrUnknownProfile  = constable.Error("unknown profile")
)

const (
	NameAdmin              = "admin"
	NameClusterReadonly    = "cluster-readonly"
	NameNamespacedReadonly = "namespaced-readonly"
)

// Profile is a named, ordered list of bindings. Group is the organization that a client
// certificate must carry for the bindings to apply to it.
type Profile struct {
	Name     string
	Group    string
	Bindings []Binding
}

// Applier applies profiles through a Client.
type Applier struct {
	client Client
	log    plog.Logger
}

func NewApplier(client Client, log plog.Logger) *Applier {
	return &Applier{client: client, log: log.WithName("profile")}
}

// Apply applies the profile's bindings in order and stops at the first failure. Bindings that were
// already applied are left in place.
func (a *Applier) Apply(ctx context.Context, p Profile) error {
	for i, b := range p.Bindings {
		if err := Apply(ctx, a.client, b); err != nil {
			return fmt.Errorf("could not apply profile %q: %w", p.Name, err)
		}
		a.log.Debug("applied binding", "profile", p.Name, "index", i, "kind", b.Kind(), "name", b.Name, "namespace", b.Namespace)
	}

	a.log.Info("applied profile", "profile", p.Name, "bindings", len(p.Bindings))
	return nil
}

// Admin grants cluster-admin to the cluster-admins group.
func Admin() Profile {
	return clusterProfile(NameAdmin, "cluster-admin-binding", "cluster-admin", "cluster-admins")
}

// ClusterReadonly grants the view role cluster wide to the cluster-readonly group.
func ClusterReadonly() Profile {
	return clusterProfile(NameClusterReadonly, "cluster-readonly-binding", "view", "cluster-readonly")
}

// NamespacedReadonly grants the view role within one namespace to the readonly-<namespace> group.
func NamespacedReadonly(namespace string) Profile {
	name := "readonly-" + namespace
	return Profile{
		Name:  name,
		Group: name,
		Bindings: []Binding{{
			Scope:     NamespaceScoped,
			Name:      name,
			Namespace: namespace,
			RoleRef:   clusterRoleRef("view"),
			Subject:   groupSubject(name),
		}},
	}
}

func clusterProfile(profileName, bindingName, clusterRole, group string) Profile {
	return Profile{
		Name:  profileName,
		Group: group,
		Bindings: []Binding{{
			Scope:   ClusterScoped,
			Name:    bindingName,
			RoleRef: clusterRoleRef(clusterRole),
			Subject: groupSubject(group),
		}},
	}
}

func clusterRoleRef(name string) rbacv1.RoleRef {
	return rbacv1.RoleRef{APIGroup: rbacv1.GroupName, Kind: "ClusterRole", Name: name}
}

func groupSubject(name string) rbacv1.Subject {
	return rbacv1.Subject{APIGroup: rbacv1.GroupName, Kind: rbacv1.GroupKind, Name: name}
}

// Names lists the profile selectors that Lookup accepts.
func Names() []string {
	return []string{NameAdmin, NameClusterReadonly, NameNamespacedReadonly}
}

// Lookup returns the built-in profile for a selector. The namespace is only used, and then
// required, by namespaced-readonly.
func Lookup(name, namespace string) (Profile, error) {
	switch name {
	case NameAdmin:
		return Admin(), nil
	case NameClusterReadonly:
		return ClusterReadonly(), nil
	case NameNamespacedReadonly:
		if namespace == "" {
			return Profile{}, fmt.Errorf("%w: profile %q requires a namespace", ErrMissingIdentity, name)
		}
		return NamespacedReadonly(namespace), nil
	default:
		return Profile{}, fmt.Errorf("%w %q, must be one of: %s", ErrUnknownProfile, name, strings.Join(Names(), ", "))
	}
}
