// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package csr drives a CertificateSigningRequest through creation, approval and issuance.
package csr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	certificatesv1 "k8s.io/api/certificates/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/validation"
	certificatesv1client "k8s.io/client-go/kubernetes/typed/certificates/v1"
	"k8s.io/utils/clock"
	"k8s.io/utils/ptr"

	"go.coralgate.dev/internal/constable"
	"go.coralgate.dev/internal/plog"
)

const (
	ErrAPI          = constable.Error("cluster API request failed")
	ErrTimeout      = constable.Error("timed out")
	ErrMissingField = constable.Error("cluster API response is missing a required field")
	ErrValidity     = constable.Error("invalid certificate validity")
)

const (
	ApprovalReason  = "coralgate auto approval, cli usage"
	ApprovalMessage = "Approved by coralgate tool"

	CreatedByLabel = "created-by"
	CreatedByValue = "coralgate"
	UserLabel      = "user"
	GroupLabel     = "group"

	DefaultMaxAttempts = 32
	DefaultInterval    = time.Second
	DefaultCooldown    = 30 * time.Second

	// MaxValidity is the longest validity expirationSeconds can carry.
	MaxValidity = math.MaxInt32 * time.Second
)

// Phase is where a CertificateSigningRequest is in its lifecycle, as seen by this process.
// ApprovalRequested becomes Approved once the cluster's response carries the Approved condition.
// Polling starts from either of the two.
type Phase string

const (
	PhaseBuilt             Phase = "Built"
	PhaseSubmitted         Phase = "Submitted"
	PhaseApprovalRequested Phase = "ApprovalRequested"
	PhaseApproved          Phase = "Approved"
	PhasePolling           Phase = "Polling"
	PhaseIssued            Phase = "Issued"
	PhaseTimedOut          Phase = "TimedOut"
)

// Record pairs a CertificateSigningRequest with the last phase it reached.
type Record struct {
	Phase Phase
	CSR   *certificatesv1.CertificateSigningRequest
}

// Name returns the CertificateSigningRequest name for the user.
func Name(user string) string {
	return user + "-csr"
}

// Controller submits, approves and waits for one CertificateSigningRequest at a time.
type Controller struct {
	client certificatesv1client.CertificateSigningRequestInterface
	clock  clock.Clock
	log    plog.Logger

	MaxAttempts int
	Interval    time.Duration
	Cooldown    time.Duration
}

func NewController(client certificatesv1client.CertificateSigningRequestInterface, clock clock.Clock, log plog.Logger) *Controller {
	return &Controller{
		client:      client,
		clock:       clock,
		log:         log.WithName("csr"),
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
		Cooldown:    DefaultCooldown,
	}
}

// ValidateValidity checks that validity is a whole number of seconds between one second and
// MaxValidity, so that it converts to expirationSeconds without loss.
func ValidateValidity(validity time.Duration) error {
	if validity < time.Second || validity > MaxValidity {
		return fmt.Errorf("%w: %s is not between 1s and %s", ErrValidity, validity, MaxValidity)
	}
	if validity%time.Second != 0 {
		return fmt.Errorf("%w: %s is not a whole number of seconds", ErrValidity, validity)
	}
	return nil
}

// Build returns the CertificateSigningRequest object for a client certificate. It does not contact
// the cluster. validity must pass ValidateValidity.
func Build(user, group string, requestPEM []byte, validity time.Duration) *Record {
	labels := map[string]string{CreatedByLabel: CreatedByValue}
	// identities such as email addresses are not valid label values, so only label what the API will accept
	if len(validation.IsValidLabelValue(user)) == 0 {
		labels[UserLabel] = user
	}
	if len(validation.IsValidLabelValue(group)) == 0 {
		labels[GroupLabel] = group
	}

	return &Record{
		Phase: PhaseBuilt,
		CSR: &certificatesv1.CertificateSigningRequest{
			TypeMeta: metav1.TypeMeta{
				APIVersion: certificatesv1.SchemeGroupVersion.String(),
				Kind:       "CertificateSigningRequest",
			},
			ObjectMeta: metav1.ObjectMeta{
				Name:   Name(user),
				Labels: labels,
			},
			Spec: certificatesv1.CertificateSigningRequestSpec{
				Request:           requestPEM,
				SignerName:        certificatesv1.KubeAPIServerClientSignerName,
				Usages:            []certificatesv1.KeyUsage{certificatesv1.UsageClientAuth},
				ExpirationSeconds: ptr.To(int32(validity / time.Second)),
			},
		},
	}
}

// Submit creates the CertificateSigningRequest. Creation is not idempotent so it is never retried.
func (c *Controller) Submit(ctx context.Context, record *Record) (*Record, error) {
	if err := requirePhase(record, PhaseBuilt); err != nil {
		return nil, err
	}

	created, err := c.client.Create(ctx, record.CSR, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: could not create CertificateSigningRequest %q: %w", ErrAPI, record.CSR.Name, err)
	}
	if created == nil || created.Name == "" {
		return nil, fmt.Errorf("%w: created CertificateSigningRequest has no name", ErrMissingField)
	}

	c.log.Debug("created CertificateSigningRequest", "name", created.Name, "signerName", created.Spec.SignerName)
	return &Record{Phase: PhaseSubmitted, CSR: created}, nil
}

// RequestApproval merges an Approved condition into the status of a submitted CertificateSigningRequest.
func (c *Controller) RequestApproval(ctx context.Context, record *Record) (*Record, error) {
	if err := requirePhase(record, PhaseSubmitted); err != nil {
		return nil, err
	}

	patch, err := approvalPatch(c.clock.Now())
	if err != nil {
		return nil, err
	}

	approved, err := c.client.Patch(ctx, record.CSR.Name, types.MergePatchType, patch, metav1.PatchOptions{}, "approval")
	if err != nil {
		return nil, fmt.Errorf("%w: could not approve CertificateSigningRequest %q: %w", ErrAPI, record.CSR.Name, err)
	}
	if approved == nil {
		approved = record.CSR
	}

	phase := PhaseApprovalRequested
	if hasCondition(approved, certificatesv1.CertificateApproved) {
		phase = PhaseApproved
	}

	c.log.Debug("requested approval of CertificateSigningRequest", "name", record.CSR.Name, "phase", phase)
	return &Record{Phase: phase, CSR: approved}, nil
}

func approvalPatch(now time.Time) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"status": map[string]interface{}{
			"conditions": []map[string]interface{}{{
				"type":           string(certificatesv1.CertificateApproved),
				"status":         string(corev1.ConditionTrue),
				"reason":         ApprovalReason,
				"message":        ApprovalMessage,
				"lastUpdateTime": metav1.NewTime(now),
			}},
		},
	})
}

// PollForIssuance fetches the named CertificateSigningRequest until the signer has issued its
// certificate. A failed fetch and a missing certificate both use up one attempt and are followed by
// one Interval of sleep. After MaxAttempts it sleeps for Cooldown and returns ErrTimeout. Every sleep
// ends early with the context's error once ctx is done.
func (c *Controller) PollForIssuance(ctx context.Context, name string) ([]byte, error) {
	warnedNotApproved := false

	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stopped waiting for CertificateSigningRequest %q: %w", name, err)
		}

		current, err := c.client.Get(ctx, name, metav1.GetOptions{})
		switch {
		case err != nil:
			c.log.DebugErr("could not get CertificateSigningRequest, will retry", err, "name", name, "attempt", attempt)
		case len(current.Status.Certificate) > 0:
			c.log.Debug("CertificateSigningRequest was issued", "name", name, "attempt", attempt)
			return current.Status.Certificate, nil
		default:
			if condition := blockingCondition(current); condition != nil && !warnedNotApproved {
				warnedNotApproved = true
				c.log.Warning("CertificateSigningRequest will not be issued unless its condition is cleared",
					"name", name, "condition", condition.Type, "reason", condition.Reason, "message", condition.Message)
			}
			c.log.Debug("CertificateSigningRequest has no certificate yet, will retry", "name", name, "attempt", attempt)
		}

		if err := c.wait(ctx, c.Interval); err != nil {
			return nil, fmt.Errorf("stopped waiting for CertificateSigningRequest %q: %w", name, err)
		}
	}

	if err := c.wait(ctx, c.Cooldown); err != nil {
		return nil, fmt.Errorf("stopped waiting for CertificateSigningRequest %q: %w", name, err)
	}
	return nil, fmt.Errorf("%w: waiting for CertificateSigningRequest %q to be issued after %d attempts", ErrTimeout, name, c.MaxAttempts)
}

// Run builds and submits a CertificateSigningRequest, approves it and waits for the certificate.
// A CertificateSigningRequest that was created before a later step failed is left in the cluster.
func (c *Controller) Run(ctx context.Context, user, group string, requestPEM []byte, validity time.Duration) ([]byte, error) {
	if err := ValidateValidity(validity); err != nil {
		return nil, err
	}
	record := Build(user, group, requestPEM, validity)

	record, err := c.Submit(ctx, record)
	if err != nil {
		return nil, err
	}

	record, err = c.RequestApproval(ctx, record)
	if err != nil {
		return nil, err
	}

	record.Phase = PhasePolling
	certificate, err := c.PollForIssuance(ctx, record.CSR.Name)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			record.Phase = PhaseTimedOut
		}
		c.log.Debug("CertificateSigningRequest was not issued", "name", record.CSR.Name, "phase", record.Phase)
		return nil, err
	}

	record.Phase = PhaseIssued
	c.log.Info("issued client certificate", "name", record.CSR.Name, "user", user, "group", group)
	return certificate, nil
}

// wait sleeps for d on the controller's clock, returning early with the context's error.
func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(d):
		return nil
	}
}

func requirePhase(record *Record, want Phase) error {
	if record == nil || record.CSR == nil {
		return fmt.Errorf("%w: no CertificateSigningRequest", ErrMissingField)
	}
	if record.Phase != want {
		return fmt.Errorf("CertificateSigningRequest %q is in phase %s, expected %s", record.CSR.Name, record.Phase, want)
	}
	return nil
}

func hasCondition(request *certificatesv1.CertificateSigningRequest, conditionType certificatesv1.RequestConditionType) bool {
	for _, condition := range request.Status.Conditions {
		if condition.Type == conditionType && condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

// blockingCondition returns a Denied or Failed condition, which the signer will never issue past.
func blockingCondition(request *certificatesv1.CertificateSigningRequest) *certificatesv1.CertificateSigningRequestCondition {
	for i := range request.Status.Conditions {
		condition := &request.Status.Conditions[i]
		if condition.Status != corev1.ConditionTrue {
			continue
		}
		if condition.Type == certificatesv1.CertificateDenied || condition.Type == certificatesv1.CertificateFailed {
			return condition
		}
	}
	return nil
}
