// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	rbacv1ac "k8s.io/client-go/applyconfigurations/rbac/v1"
	"k8s.io/client-go/kubernetes"
)

// FieldManager owns every field coralgate applies, so repeated runs converge instead of conflicting.
const FieldManager = "kaccess"

// Client is the part of the cluster API that bindings are applied to.
type Client interface {
	ApplyClusterRoleBinding(ctx context.Context, binding *rbacv1ac.ClusterRoleBindingApplyConfiguration) error
	ApplyRoleBinding(ctx context.Context, binding *rbacv1ac.RoleBindingApplyConfiguration) error
}

var _ Client = kubeClient{}

type kubeClient struct {
	client kubernetes.Interface
}

// NewKubeClient returns a Client that uses server-side apply with forced ownership.
func NewKubeClient(client kubernetes.Interface) Client {
	return kubeClient{client: client}
}

func applyOptions() metav1.ApplyOptions {
	return metav1.ApplyOptions{FieldManager: FieldManager, Force: true}
}

func (k kubeClient) ApplyClusterRoleBinding(ctx context.Context, binding *rbacv1ac.ClusterRoleBindingApplyConfiguration) error {
	_, err := k.client.RbacV1().ClusterRoleBindings().Apply(ctx, binding, applyOptions())
	return err
}

func (k kubeClient) ApplyRoleBinding(ctx context.Context, binding *rbacv1ac.RoleBindingApplyConfiguration) error {
	_, err := k.client.RbacV1().RoleBindings(*binding.Namespace).Apply(ctx, binding, applyOptions())
	return err
}
