package statemachine

import (
	"fmt"
	"strings"
)

// IntegrationPattern is the suffix of a service integration resource.
type IntegrationPattern string

const (
	// IntegrationRequestResponse returns as soon as the service accepts the call.
	IntegrationRequestResponse IntegrationPattern = ""
	// IntegrationSync waits for the started job to finish.
	IntegrationSync IntegrationPattern = ".sync"
	// IntegrationWaitForTaskToken waits for a callback with the task token.
	IntegrationWaitForTaskToken IntegrationPattern = ".waitForTaskToken"
)

const (
	EMRCreateClusterAction    = "createCluster"
	EMRAddStepAction          = "addStep"
	EMRTerminateClusterAction = "terminateCluster"

	emrService    = "elasticmapreduce"
	lambdaService = "lambda"
	lambdaInvoke  = "invoke"
)

// ServiceResource builds an optimized service integration ARN.
func ServiceResource(service, action string, pattern IntegrationPattern) string {
	return fmt.Sprintf("arn:aws:states:::%s:%s%s", service, action, pattern)
}

// IsLambdaFunctionResource reports whether resource is a function ARN, or a
// Terraform reference to one, invoked directly rather than via lambda:invoke.
func IsLambdaFunctionResource(resource string) bool {
	return strings.HasPrefix(resource, "arn:aws:lambda:") ||
		(strings.HasPrefix(resource, "${aws_lambda_function.") && strings.HasSuffix(resource, ".arn}"))
}

// IsSynchronous reports whether the engine waits for the task's work to
// finish before moving on. Direct function invokes and lambda:invoke
// without InvocationType Event return the function's result; .sync and
// callback patterns wait for the job.
func IsSynchronous(task *TaskState) bool {
	r := task.Resource
	switch {
	case IsLambdaFunctionResource(r):
		return true
	case strings.HasSuffix(r, string(IntegrationSync)), strings.HasSuffix(r, string(IntegrationWaitForTaskToken)):
		return true
	case r == ServiceResource(lambdaService, lambdaInvoke, IntegrationRequestResponse):
		return task.Parameters["InvocationType"] != "Event"
	}
	return false
}

type EMRInstanceRole string

const (
	EMRInstanceRoleMaster EMRInstanceRole = "MASTER"
	EMRInstanceRoleCore   EMRInstanceRole = "CORE"
)

type EMRInstanceGroup struct {
	Name          string
	InstanceRole  EMRInstanceRole
	InstanceType  string
	InstanceCount int
}

type EMRCluster struct {
	Name         string
	ReleaseLabel string
	Applications []string
	LogUri       string
	ServiceRole  string
	JobFlowRole  string

	InstanceGroups []EMRInstanceGroup
}

func (c EMRCluster) parameters() map[string]interface{} {
	apps := make([]map[string]string, 0, len(c.Applications))
	for _, a := range c.Applications {
		apps = append(apps, map[string]string{"Name": a})
	}
	groups := make([]map[string]interface{}, 0, len(c.InstanceGroups))
	for _, g := range c.InstanceGroups {
		groups = append(groups, map[string]interface{}{
			"Name":          g.Name,
			"InstanceRole":  string(g.InstanceRole),
			"InstanceType":  g.InstanceType,
			"InstanceCount": g.InstanceCount,
			"Market":        "ON_DEMAND",
		})
	}
	params := map[string]interface{}{
		"Name":         c.Name,
		"ReleaseLabel": c.ReleaseLabel,
		"Applications": apps,
		"Instances": map[string]interface{}{
			"InstanceGroups": groups,
			// Steps are added after creation; an idle cluster must not shut itself down.
			"KeepJobFlowAliveWhenNoSteps": true,
		},
		"ServiceRole":       c.ServiceRole,
		"JobFlowRole":       c.JobFlowRole,
		"VisibleToAllUsers": true,
	}
	if c.LogUri != "" {
		params["LogUri"] = c.LogUri
	}
	return params
}

type EMRStep struct {
	Name            string
	ActionOnFailure string
	Jar             string
	Args            []string
}

func newTaskState(stateName string, resource string, next *string, comment string) *TaskState {
	t := &TaskState{
		BaseState: BaseState{
			StateName: stateName,
			StateType: TaskStateType,
			Comment:   comment,
		},
		Resource: resource,
	}
	t.chain(next)
	return t
}

// CreateEMRCreateClusterState starts a cluster and waits until it is ready
// for steps. The engine's result is the cluster description with ClusterId.
func CreateEMRCreateClusterState(stateName string, cluster EMRCluster, next *string, comment string) *TaskState {
	t := newTaskState(stateName, ServiceResource(emrService, EMRCreateClusterAction, IntegrationSync), next, comment)
	t.Parameters = cluster.parameters()
	return t
}

// CreateEMRAddStepState adds a step to the cluster at clusterIdPath and waits for it.
func CreateEMRAddStepState(stateName string, clusterIdPath string, step EMRStep, next *string, comment string) *TaskState {
	t := newTaskState(stateName, ServiceResource(emrService, EMRAddStepAction, IntegrationSync), next, comment)
	actionOnFailure := step.ActionOnFailure
	if actionOnFailure == "" {
		actionOnFailure = "CONTINUE"
	}
	t.Parameters = map[string]interface{}{
		"ClusterId" + ReferencePathSuffix: clusterIdPath,
		"Step": map[string]interface{}{
			"Name":            step.Name,
			"ActionOnFailure": actionOnFailure,
			"HadoopJarStep": map[string]interface{}{
				"Jar":  step.Jar,
				"Args": step.Args,
			},
		},
	}
	return t
}

// CreateEMRTerminateClusterState terminates the cluster at clusterIdPath and waits for it.
func CreateEMRTerminateClusterState(stateName string, clusterIdPath string, next *string, comment string) *TaskState {
	t := newTaskState(stateName, ServiceResource(emrService, EMRTerminateClusterAction, IntegrationSync), next, comment)
	t.Parameters = map[string]interface{}{
		"ClusterId" + ReferencePathSuffix: clusterIdPath,
	}
	return t
}

// CreateLambdaTaskState invokes a function by ARN and waits for its result.
func CreateLambdaTaskState(stateName string, functionArn string, next *string, comment string) *TaskState {
	return newTaskState(stateName, functionArn, next, comment)
}

// CreateAsyncLambdaTaskState queues an invocation and continues without waiting for the function.
func CreateAsyncLambdaTaskState(stateName string, functionArn string, next *string, comment string) *TaskState {
	t := newTaskState(stateName, ServiceResource(lambdaService, lambdaInvoke, IntegrationRequestResponse), next, comment)
	t.Parameters = map[string]interface{}{
		"FunctionName":                  functionArn,
		"InvocationType":                "Event",
		"Payload" + ReferencePathSuffix: "$",
	}
	return t
}

func CreatePassState(stateName string, next *string, result interface{}, comment string) *PassState {
	p := &PassState{
		BaseState: BaseState{
			StateName: stateName,
			StateType: PassStateType,
			Comment:   comment,
		},
		Result: result,
	}
	p.chain(next)
	return p
}

func CreateSucceedState(stateName string, comment string) *SucceedState {
	return &SucceedState{
		BaseState: BaseState{
			StateName: stateName,
			StateType: SucceedStateType,
			Comment:   comment,
		},
	}
}

func CreateFailState(stateName string, errorName string, cause string, comment string) *FailState {
	return &FailState{
		BaseState: BaseState{
			StateName: stateName,
			StateType: FailStateType,
			Comment:   comment,
		},
		Error: errorName,
		Cause: cause,
	}
}
