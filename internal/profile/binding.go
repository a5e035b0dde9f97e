// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"errors"
	"fmt"

	rbacv1 "k8s.io/api/rbac/v1"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	rbacv1ac "k8s.io/client-go/applyconfigurations/rbac/v1"
)

// Scope says which API surface a Binding is applied to.
type Scope string

const (
	// ClusterScoped bindings are ClusterRoleBindings.
	ClusterScoped Scope = "ClusterScoped"
	// NamespaceScoped bindings are RoleBindings and need a namespace.
	NamespaceScoped Scope = "NamespaceScoped"
)

// Binding grants one role to one subject, either cluster wide or within a namespace.
type Binding struct {
	Scope     Scope
	Name      string
	Namespace string
	RoleRef   rbacv1.RoleRef
	Subject   rbacv1.Subject
}

// Kind is the RBAC resource kind that the binding is applied as.
func (b Binding) Kind() string {
	if b.Scope == NamespaceScoped {
		return "RoleBinding"
	}
	return "ClusterRoleBinding"
}

// Validate checks that the binding has the identity fields its scope needs.
func (b Binding) Validate() error {
	if b.Scope != ClusterScoped && b.Scope != NamespaceScoped {
		return fmt.Errorf("%w: unknown scope %q", ErrMissingIdentity, b.Scope)
	}

	var errs []error
	if b.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if b.Scope == NamespaceScoped && b.Namespace == "" {
		errs = append(errs, errors.New("namespace is required"))
	}

	if err := utilerrors.NewAggregate(errs); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMissingIdentity, b.Kind(), err)
	}
	return nil
}

// Apply validates the binding and then upserts it with server-side apply on the API surface
// that matches its scope.
func Apply(ctx context.Context, client Client, b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}

	var err error
	switch b.Scope {
	case ClusterScoped:
		err = client.ApplyClusterRoleBinding(ctx, clusterRoleBinding(b))
	case NamespaceScoped:
		err = client.ApplyRoleBinding(ctx, roleBinding(b))
	default:
		panic(fmt.Sprintf("unhandled binding scope %q", b.Scope)) // Validate only allows known scopes
	}
	if err != nil {
		if b.Namespace != "" {
			return fmt.Errorf("%w: could not apply %s %s/%s: %w", ErrAPI, b.Kind(), b.Namespace, b.Name, err)
		}
		return fmt.Errorf("%w: could not apply %s %s: %w", ErrAPI, b.Kind(), b.Name, err)
	}
	return nil
}

func clusterRoleBinding(b Binding) *rbacv1ac.ClusterRoleBindingApplyConfiguration {
	return rbacv1ac.ClusterRoleBinding(b.Name).
		WithLabels(managedLabels()).
		WithRoleRef(roleRef(b.RoleRef)).
		WithSubjects(subject(b.Subject))
}

func roleBinding(b Binding) *rbacv1ac.RoleBindingApplyConfiguration {
	return rbacv1ac.RoleBinding(b.Name, b.Namespace).
		WithLabels(managedLabels()).
		WithRoleRef(roleRef(b.RoleRef)).
		WithSubjects(subject(b.Subject))
}

func roleRef(r rbacv1.RoleRef) *rbacv1ac.RoleRefApplyConfiguration {
	return rbacv1ac.RoleRef().
		WithAPIGroup(r.APIGroup).
		WithKind(r.Kind).
		WithName(r.Name)
}

func subject(s rbacv1.Subject) *rbacv1ac.SubjectApplyConfiguration {
	ac := rbacv1ac.Subject().
		WithKind(s.Kind).
		WithName(s.Name)
	if s.APIGroup != "" {
		ac.WithAPIGroup(s.APIGroup)
	}
	if s.Namespace != "" {
		ac.WithNamespace(s.Namespace)
	}
	return ac
}

func managedLabels() map[string]string {
	return map[string]string{"created-by": "coralgate"}
}
