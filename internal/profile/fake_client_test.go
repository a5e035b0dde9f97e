// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"encoding/json"
	"fmt"

	rbacv1ac "k8s.io/client-go/applyconfigurations/rbac/v1"
)

// fakeClient records every apply and keeps the last applied state per object, the way
// server-side apply with forced ownership converges.
type fakeClient struct {
	calls  []string
	errors map[string]error
	state  map[string]string
}

var _ Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{errors: map[string]error{}, state: map[string]string{}}
}

func (f *fakeClient) ApplyClusterRoleBinding(_ context.Context, binding *rbacv1ac.ClusterRoleBindingApplyConfiguration) error {
	return f.apply("ClusterRoleBinding/"+*binding.Name, binding)
}

func (f *fakeClient) ApplyRoleBinding(_ context.Context, binding *rbacv1ac.RoleBindingApplyConfiguration) error {
	return f.apply(fmt.Sprintf("RoleBinding/%s/%s", *binding.Namespace, *binding.Name), binding)
}

func (f *fakeClient) apply(key string, obj interface{}) error {
	f.calls = append(f.calls, key)
	if err := f.errors[key]; err != nil {
		return err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	f.state[key] = string(data)
	return nil
}
